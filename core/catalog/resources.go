package catalog

import "github.com/trezcool/syllabus/core/view"

var (
	GeneralInfo = Resource{
		Name:     "general-info",
		Endpoint: "/api/general-info",
		Layout: view.Layout{
			Title:     "Training programs",
			SearchKey: "tenCtdt",
			Columns: []view.Column{
				{Key: "tenCtdt", Label: "Program", Style: "width: 450px"},
				{Key: "nganh", Label: "Major"},
				{Key: "khoaQuanLy", Label: "Managing faculty"},
				{Key: "heDaoTao", Label: "Training system"},
				{Key: "trangThai", Label: "Status"},
			},
		},
	}

	Courses = Resource{
		Name:     "courses",
		Endpoint: "/api/courses",
		Layout: view.Layout{
			Title:     "Courses",
			SearchKey: "tenHp",
			Columns: []view.Column{
				{Key: "tenHp", Label: "Course name"},
				{Key: "maHp", Label: "Course code", Style: "width: 150px"},
				{Key: "soTinChi", Label: "Credits", Style: "width: 150px"},
				{Key: "soTietLyThuyet", Label: "Theory periods", Style: "width: 200px"},
				{Key: "soTietThucHanh", Label: "Practice periods", Style: "width: 200px"},
				{Key: "loaiHp", Label: "Course type", Style: "width: 200px"},
				{Key: "hocPhanTienQuyet", Label: "Prerequisite", Style: "width: 230px"},
			},
			SelectFilter: &view.SelectFilter{Key: "loaiHp", Options: options("Bắt buộc", "Tự chọn")},
		},
	}

	DetailedSyllabus = Resource{
		Name:     "detailed-syllabus",
		Endpoint: "/api/study-guide",
		Layout: view.Layout{
			Title:     "Detailed syllabus",
			SearchKey: "nameCourse",
			Columns: []view.Column{
				{Key: "nameCourse", Label: "Course name"},
				{Key: "mucTieu", Label: "Objectives"},
				{Key: "phuongPhapGiangDay", Label: "Teaching methods"},
				{Key: "taiLieuThamKhao", Label: "References"},
				{Key: "trangThai", Label: "Status", Style: "width: 150px"},
				{Key: "courseId", Label: "Course Id", Hidden: true},
			},
			SelectFilter: &view.SelectFilter{Key: "trangThai", Options: options("Đã duyệt", "Chưa duyệt")},
		},
	}

	TeachingPlan = Resource{
		Name:     "teaching-plan",
		Endpoint: "/api/teaching-plan",
		Layout: view.Layout{
			Title:     "Teaching plan",
			SearchKey: "tenHp",
			Columns: []view.Column{
				{Key: "maHp", Label: "Course code", Style: "width: 150px"},
				{Key: "tenHp", Label: "Course name", Style: "width: 400px"},
				{Key: "soTinChi", Label: "Credits"},
				{Key: "hocKy", Label: "Semester"},
				{Key: "maHpTruoc", Label: "Previous course code", Style: "width: 200px"},
			},
			SelectFilter: &view.SelectFilter{Key: "hocKy", Options: semesters(10)},
		},
	}

	GroupPlan = Resource{
		Name:     "group-plan",
		Endpoint: "/api/plan-group",
		Layout: view.Layout{
			Title:     "Group plan",
			SearchKey: "maNhom",
			Columns: []view.Column{
				{Key: "maNhom", Label: "Group", Style: "width: 80px"},
				{Key: "hocPhanName", Label: "Course name", Style: "width: 200px"},
				{Key: "namHoc", Label: "School year", Style: "width: 100px"},
				{Key: "hocKy", Label: "Sem.", Style: "width: 30px"},
				{Key: "soLuongSv", Label: "Students", Style: "width: 30px"},
				{Key: "thoiGianBatDau", Label: "Starts", Style: "width: 150px", Render: renderDate("thoiGianBatDau")},
				{Key: "thoiGianKetThuc", Label: "Ends", Style: "width: 150px", Render: renderDate("thoiGianKetThuc")},
				{Key: "trangThai", Label: "Status", Style: "width: 120px"},
			},
		},
	}

	TeachingAssignment = Resource{
		Name:     "teaching-assignment",
		Endpoint: "/api/plan-group-teacher",
		Layout: view.Layout{
			Title:     "Teaching assignment",
			SearchKey: "planGroupName",
			Columns: []view.Column{
				{Key: "planGroupName", Label: "Group"},
				{Key: "teacherName", Label: "Teacher"},
				{Key: "vaiTro", Label: "Role"},
				{Key: "soTiet", Label: "Periods", Style: "width: 150px"},
				{Key: "planGroupId", Label: "PGId", Hidden: true},
				{Key: "teacherId", Label: "TeacherId", Hidden: true},
			},
			SelectFilter: &view.SelectFilter{Key: "vaiTro", Options: options("Phụ trách", "Sửa")},
		},
	}

	Teachers = Resource{
		Name:     "teachers",
		Endpoint: "/api/teachers",
		Layout: view.Layout{
			Title:     "Teachers",
			SearchKey: "hoTen",
			Columns: []view.Column{
				{Key: "maGv", Label: "Code", Style: "width: 100px"},
				{Key: "hoTen", Label: "Full name", Style: "width: 200px"},
				{Key: "boMon", Label: "Department", Style: "width: 150px"},
				{Key: "khoa", Label: "Faculty", Style: "width: 150px"},
				{Key: "trinhDo", Label: "Degree", Style: "width: 100px"},
				{Key: "chuyenMon", Label: "Speciality", Style: "width: 250px"},
				{Key: "trangThai", Label: "Status", Style: "width: 150px"},
				{Key: "namSinh", Label: "Birth date", Style: "width: 120px", Render: renderDate("namSinh")},
			},
			SelectFilter: &view.SelectFilter{Key: "trinhDo", Options: options("Thạc sĩ", "Tiến sĩ")},
		},
	}
)

// Default returns the registry of every dashboard table.
func Default() *Registry {
	return NewRegistry(GeneralInfo, Courses, DetailedSyllabus, TeachingPlan, GroupPlan, TeachingAssignment, Teachers)
}
