package echoweb

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/syllabus/core/catalog"
	"github.com/trezcool/syllabus/core/table"
	"github.com/trezcool/syllabus/core/view"
)

var nowFunc = time.Now // mockable

type (
	// tableEntry is the state of one resource table within a session.
	tableEntry struct {
		resource catalog.Resource
		table    *table.Table
		toaster  *view.Toaster
		search   *view.SearchBox // nil when the resource has no search key
	}

	session struct {
		mu       sync.Mutex
		tables   map[string]*tableEntry
		lastSeen time.Time
	}

	// sessionStore keeps the tables of every signed-in session in memory.
	sessionStore struct {
		deps ServerDeps

		mu       sync.Mutex
		sessions map[string]*session
	}
)

func newSessionStore(deps ServerDeps) *sessionStore {
	return &sessionStore{
		deps:     deps,
		sessions: make(map[string]*session),
	}
}

func (st *sessionStore) get(id string) *session {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		sess = &session{tables: make(map[string]*tableEntry)}
		st.sessions[id] = sess
	}
	sess.mu.Lock()
	sess.lastSeen = nowFunc()
	sess.mu.Unlock()
	return sess
}

func (st *sessionStore) touch(id string) {
	st.get(id)
}

// entry returns the table of resource for session id, creating it on first use.
func (st *sessionStore) entry(id string, res catalog.Resource) (*tableEntry, error) {
	sess := st.get(id)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if e, ok := sess.tables[res.Name]; ok {
		return e, nil
	}
	e, err := st.newEntry(res)
	if err != nil {
		return nil, err
	}
	sess.tables[res.Name] = e
	return e, nil
}

func (st *sessionStore) newEntry(res catalog.Resource) (*tableEntry, error) {
	conf := st.deps.Conf
	toaster := view.NewToaster(conf.Table.ToastTimeout)

	tc := res.TableConfig()
	tc.PageSize = conf.Table.DefaultPageSize
	tc.Notify = toaster.Notify
	tc.Transport = st.deps.Transport
	tc.Logger = st.deps.Logger
	tc.Pool = st.deps.DeletePool
	tc.DeleteConcurrency = conf.Backend.DeleteConcurrency

	tbl, err := table.New(tc)
	if err != nil {
		return nil, errors.Wrapf(err, "creating table %s", res.Name)
	}

	e := &tableEntry{resource: res, table: tbl, toaster: toaster}
	if res.SearchKey != "" {
		e.search = view.NewSearchBox(res.SearchKey, conf.Table.SearchDebounce, tbl.MergeSearchParam)
	}
	return e, nil
}

func (st *sessionStore) drop(id string) {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if ok {
		sess.close()
	}
}

func (st *sessionStore) dropAll() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*session)
	st.mu.Unlock()

	for _, sess := range sessions {
		sess.close()
	}
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// sweep drops the sessions idle for longer than the idle timeout. It returns how many were dropped.
func (st *sessionStore) sweep() int {
	deadline := nowFunc().Add(-st.deps.Conf.Server.SessionIdleTimeout)

	st.mu.Lock()
	idle := make([]*session, 0)
	for id, sess := range st.sessions {
		sess.mu.Lock()
		expired := sess.lastSeen.Before(deadline)
		sess.mu.Unlock()
		if expired {
			idle = append(idle, sess)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, sess := range idle {
		sess.close()
	}
	return len(idle)
}

// run sweeps idle sessions and login limiters every interval until ctx is done.
func (st *sessionStore) run(ctx context.Context, interval time.Duration, limiter *loginLimiter) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.sweep(); n > 0 {
				st.deps.Logger.Debug("sessions: swept idle sessions", map[string]interface{}{"count": n})
			}
			limiter.sweep()
		}
	}
}

func (sess *session) close() {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	for _, e := range sess.tables {
		if e.search != nil {
			e.search.Close()
		}
	}
}
