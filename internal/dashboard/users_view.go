package dashboard

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"user-role-admin/internal/domain"
	"user-role-admin/internal/service"
)

type Options struct {
	PageSize  int
	NoticeTTL time.Duration
}

func (o Options) withDefaults() Options {
	if o.PageSize < 1 {
		o.PageSize = service.DefaultPageSize
	}
	if o.NoticeTTL == 0 {
		o.NoticeTTL = DefaultNoticeTTL
	}
	return o
}

// UsersView 用户页：本地持有全量集合，每次状态变化重新推导当前页。
// 变更走 editor，成功后合并进本地集合；失败时集合不变。
type UsersView struct {
	editor *service.UserEditor
	opts   Options

	mu       sync.Mutex
	users    []domain.User
	loaded   bool
	version  uint64
	query    service.ViewQuery
	editMode bool
	addOpen  bool
	draft    domain.UserDraft

	memo     service.ViewPage
	memoKey  service.ViewQuery
	memoVer  uint64
	memoFull bool

	notice   *notifier
	inflight *guard
}

func NewUsersView(editor *service.UserEditor, opts Options) *UsersView {
	opts = opts.withDefaults()
	return &UsersView{
		editor:   editor,
		opts:     opts,
		query:    service.ViewQuery{Page: 1, PageSize: opts.PageSize},
		notice:   newNotifier(opts.NoticeTTL),
		inflight: newGuard(),
	}
}

// Load 只在首次挂载时拉取；force 用于手动刷新
func (v *UsersView) Load(ctx context.Context, force bool) error {
	v.mu.Lock()
	if v.loaded && !force {
		v.mu.Unlock()
		return nil
	}
	v.mu.Unlock()

	users, err := v.editor.List(ctx)
	if err != nil {
		v.notice.show(service.Failure("Failed to load users. Please try again."))
		return err
	}
	v.mu.Lock()
	v.users, v.loaded = users, true
	v.version++
	v.mu.Unlock()
	return nil
}

func (v *UsersView) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// Page 当前可见页；查询和集合都没变时直接复用上次结果
func (v *UsersView) Page() service.ViewPage {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.memoFull && v.memoKey == v.query && v.memoVer == v.version {
		return v.memo
	}
	p := service.ApplyView(v.users, v.query)
	v.query.Page = p.Page
	v.memo, v.memoKey, v.memoVer, v.memoFull = p, v.query, v.version, true
	return p
}

func (v *UsersView) Query() service.ViewQuery {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

// SetSearch 搜索、过滤、排序变化都回到第一页
func (v *UsersView) SetSearch(s string) {
	v.mu.Lock()
	v.query.Search, v.query.Page = s, 1
	v.mu.Unlock()
}

func (v *UsersView) SetRoleFilter(r domain.RoleName) {
	v.mu.Lock()
	v.query.Role, v.query.Page = r, 1
	v.mu.Unlock()
}

func (v *UsersView) SetSort(k service.SortKey) {
	v.mu.Lock()
	v.query.Sort, v.query.Page = k, 1
	v.mu.Unlock()
}

func (v *UsersView) SetPage(p int) {
	v.mu.Lock()
	v.query.Page = p
	v.mu.Unlock()
}

func (v *UsersView) NextPage() { v.SetPage(v.Query().Page + 1) }
func (v *UsersView) PrevPage() { v.SetPage(v.Query().Page - 1) }

func (v *UsersView) ToggleEditMode() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.editMode = !v.editMode
	return v.editMode
}

func (v *UsersView) EditMode() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.editMode
}

// OpenAdd 打开新增弹窗，草稿带默认值
func (v *UsersView) OpenAdd() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.addOpen = true
	zero := 0
	v.draft = domain.UserDraft{Projects: &zero, Role: domain.RoleViewer, Status: domain.StatusActive}
}

func (v *UsersView) CloseAdd() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.addOpen = false
	v.draft = domain.UserDraft{}
}

func (v *UsersView) AddOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.addOpen
}

func (v *UsersView) Draft() domain.UserDraft {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.draft
}

func (v *UsersView) SetDraft(d domain.UserDraft) {
	v.mu.Lock()
	v.draft = d
	v.mu.Unlock()
}

// SubmitAdd 提交草稿；成功后追加到本地集合并关闭弹窗，失败时弹窗保持打开
func (v *UsersView) SubmitAdd(ctx context.Context) (domain.User, error) {
	if !v.inflight.acquire() {
		return domain.User{}, domain.ErrBusy
	}
	defer v.inflight.release()

	u, n, err := v.editor.Create(ctx, v.Draft())
	v.notice.show(n)
	if err != nil {
		return domain.User{}, err
	}
	v.mu.Lock()
	v.users = append(v.users, u)
	v.version++
	v.addOpen = false
	v.draft = domain.UserDraft{}
	v.mu.Unlock()
	return u, nil
}

func (v *UsersView) ChangeRole(ctx context.Context, id int64, r domain.RoleName) (domain.User, error) {
	return v.mutate(func() (domain.User, service.Notice, error) { return v.editor.ChangeRole(ctx, id, r) })
}

func (v *UsersView) ChangeStatus(ctx context.Context, id int64, s domain.Status) (domain.User, error) {
	return v.mutate(func() (domain.User, service.Notice, error) { return v.editor.ChangeStatus(ctx, id, s) })
}

func (v *UsersView) ChangeExpiration(ctx context.Context, id int64, d domain.Date) (domain.User, error) {
	return v.mutate(func() (domain.User, service.Notice, error) { return v.editor.ChangeExpiration(ctx, id, d) })
}

// Delete 本地集合里没有的 id 直接报 ErrNotFound，不调存储
func (v *UsersView) Delete(ctx context.Context, id int64) error {
	if !v.inflight.acquire() {
		return domain.ErrBusy
	}
	defer v.inflight.release()

	v.mu.Lock()
	known := slices.ContainsFunc(v.users, func(u domain.User) bool { return u.ID == id })
	v.mu.Unlock()
	if !known {
		return fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}

	removed, n, err := v.editor.Remove(ctx, id)
	v.notice.show(n)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.users = slices.DeleteFunc(v.users, func(u domain.User) bool { return u.ID == removed })
	v.version++
	v.mu.Unlock()
	return nil
}

func (v *UsersView) mutate(call func() (domain.User, service.Notice, error)) (domain.User, error) {
	if !v.inflight.acquire() {
		return domain.User{}, domain.ErrBusy
	}
	defer v.inflight.release()

	u, n, err := call()
	v.notice.show(n)
	if err != nil {
		return domain.User{}, err
	}
	v.mu.Lock()
	if i := slices.IndexFunc(v.users, func(x domain.User) bool { return x.ID == u.ID }); i >= 0 {
		v.users[i] = u
	} else {
		v.users = append(v.users, u)
	}
	v.version++
	v.mu.Unlock()
	return u, nil
}

// Users 本地集合副本
func (v *UsersView) Users() []domain.User {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.users)
}

func (v *UsersView) Notification() Notification { return v.notice.current() }
func (v *UsersView) DismissNotification()       { v.notice.dismiss() }
func (v *UsersView) Busy() bool                 { return v.inflight.Busy() }
