package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"user-role-admin/internal/dashboard"
	"user-role-admin/internal/domain"
	"user-role-admin/internal/service"
)

type viewName string

const (
	viewUsers viewName = "users"
	viewRoles viewName = "roles"
)

// Shell 终端导航壳：在用户页和角色页之间切换，逐行读命令
type Shell struct {
	users *dashboard.UsersView
	roles *dashboard.RolesView
	out   io.Writer
	view  viewName
}

func New(users *dashboard.UsersView, roles *dashboard.RolesView, out io.Writer) *Shell {
	return &Shell{users: users, roles: roles, out: out, view: viewUsers}
}

// Run 读到 EOF 或 quit 结束；单条命令出错只打印，不退出
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	if err := s.mount(ctx, viewUsers); err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
	sc := bufio.NewScanner(in)
	s.prompt()
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		quit, err := s.Exec(ctx, sc.Text())
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
		s.prompt()
	}
	return sc.Err()
}

func (s *Shell) prompt() { fmt.Fprintf(s.out, "%s> ", s.view) }

// Exec 执行一行命令，返回是否退出
func (s *Shell) Exec(ctx context.Context, line string) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	cmd, rest := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		s.help()
		return false, nil
	case "users", "roles":
		return false, s.mount(ctx, viewName(cmd))
	}

	var err error
	if s.view == viewUsers {
		err = s.execUsers(ctx, cmd, rest)
	} else {
		err = s.execRoles(ctx, cmd, rest, strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), args[0])))
	}
	s.printNotice()
	return false, err
}

func (s *Shell) mount(ctx context.Context, v viewName) error {
	s.view = v
	var err error
	if v == viewUsers {
		err = s.users.Load(ctx, false)
	} else {
		err = s.roles.Load(ctx, false)
	}
	if err != nil {
		return err
	}
	s.render()
	return nil
}

func (s *Shell) execUsers(ctx context.Context, cmd string, args []string) error {
	v := s.users
	switch cmd {
	case "list", "ls":
	case "reload":
		if err := v.Load(ctx, true); err != nil {
			return err
		}
	case "search":
		v.SetSearch(strings.Join(args, " "))
	case "filter":
		role := domain.RoleName("")
		if len(args) > 0 && !strings.EqualFold(args[0], "all") {
			role = domain.RoleName(args[0])
			if !role.Valid() {
				return fmt.Errorf("unknown role %q", args[0])
			}
		}
		v.SetRoleFilter(role)
	case "sort":
		k, err := service.ParseSortKey(strings.Join(args, " "))
		if err != nil {
			return err
		}
		v.SetSort(k)
	case "page":
		n, err := intArg(args, 0)
		if err != nil {
			return err
		}
		v.SetPage(n)
	case "next":
		v.NextPage()
	case "prev":
		v.PrevPage()
	case "edit":
		fmt.Fprintf(s.out, "edit mode: %v\n", v.ToggleEditMode())
		return nil
	case "add":
		d, err := parseUserDraft(args)
		if err != nil {
			return err
		}
		v.OpenAdd()
		v.SetDraft(d)
		if _, err := v.SubmitAdd(ctx); err != nil {
			v.CloseAdd()
			return err
		}
	case "role", "status", "expire", "delete":
		if !v.EditMode() {
			return errors.New("enable edit mode first (edit)")
		}
		if err := s.editUser(ctx, cmd, args); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown command %q (help)", cmd)
	}
	s.render()
	return nil
}

// parseUserDraft 从尾部取固定字段，剩下的都是用户名（可含空格，可加引号）
func parseUserDraft(args []string) (domain.UserDraft, error) {
	const usage = "usage: add <name> <projects> <role> <yyyy-mm-dd> [status]"
	var d domain.UserDraft
	if len(args) < 4 {
		return d, errors.New(usage)
	}
	if _, err := domain.ParseDate(args[len(args)-1]); err != nil && len(args) > 4 {
		d.Status = domain.Status(args[len(args)-1])
		args = args[:len(args)-1]
	}
	n := len(args)
	exp, err := domain.ParseDate(args[n-1])
	if err != nil {
		return d, fmt.Errorf("expiration: %w", err)
	}
	projects, err := strconv.Atoi(args[n-3])
	if err != nil {
		return d, fmt.Errorf("projects: %w", err)
	}
	name := strings.Trim(strings.Join(args[:n-3], " "), `"'`)
	if name == "" {
		return d, errors.New(usage)
	}
	d.Name, d.Projects, d.Role, d.Expiration = name, &projects, domain.RoleName(args[n-2]), exp
	return d, nil
}

func (s *Shell) editUser(ctx context.Context, cmd string, args []string) error {
	v := s.users
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if cmd == "delete" {
		return v.Delete(ctx, id)
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: %s <id> <value>", cmd)
	}
	switch cmd {
	case "role":
		_, err = v.ChangeRole(ctx, id, domain.RoleName(args[1]))
	case "status":
		_, err = v.ChangeStatus(ctx, id, domain.Status(args[1]))
	case "expire":
		d, perr := domain.ParseDate(args[1])
		if perr != nil {
			return fmt.Errorf("expiration: %w", perr)
		}
		_, err = v.ChangeExpiration(ctx, id, d)
	}
	return err
}

// rest 是命令名之后的原始文本，权限名里有空格
func (s *Shell) execRoles(ctx context.Context, cmd string, args []string, rest string) error {
	v := s.roles
	switch cmd {
	case "list", "ls":
	case "add":
		name, perms, ok := strings.Cut(rest, " ")
		if !ok || name == "" {
			return errors.New("usage: add <name> <perm>[,<perm>...]")
		}
		v.OpenAdd()
		v.SetDraftName(name)
		for _, p := range splitPerms(perms) {
			v.ToggleDraftPermission(p)
		}
		if _, err := v.SubmitAdd(ctx); err != nil {
			v.CloseAdd()
			return err
		}
	case "manage":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		if err := v.OpenManage(id); err != nil {
			return err
		}
	case "toggle":
		for _, p := range splitPerms(rest) {
			if _, err := v.TogglePermission(p); err != nil {
				return err
			}
		}
	case "save":
		if _, err := v.SaveManage(ctx); err != nil {
			return err
		}
	case "delete":
		if err := v.DeleteManaged(ctx); err != nil {
			return err
		}
	case "close":
		v.CloseManage()
	default:
		return fmt.Errorf("unknown command %q (help)", cmd)
	}
	s.render()
	return nil
}

func (s *Shell) printNotice() {
	var n dashboard.Notification
	if s.view == viewUsers {
		n = s.users.Notification()
	} else {
		n = s.roles.Notification()
	}
	if n.Visible && n.Message != "" {
		fmt.Fprintf(s.out, "[%s] %s\n", n.Severity, n.Message)
		// 命令行里已经打印过，不再重复
		if s.view == viewUsers {
			s.users.DismissNotification()
		} else {
			s.roles.DismissNotification()
		}
	}
}

func (s *Shell) render() {
	if s.view == viewUsers {
		s.renderUsers()
	} else {
		s.renderRoles()
	}
}

func (s *Shell) renderUsers() {
	q := s.users.Query()
	p := s.users.Page()
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSER\tPROJECTS\tROLE\tSTATUS\tEXPIRATION")
	for _, u := range p.Items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\n", u.ID, u.Name, u.Projects, u.Role, u.Status, u.Expiration)
	}
	_ = tw.Flush()
	role := string(q.Role)
	if role == "" {
		role = "all"
	}
	fmt.Fprintf(s.out, "page %d/%d  total %d  search=%q role=%s sort=%s edit=%v\n",
		p.Page, max(p.TotalPages, 1), p.Total, q.Search, role, sortLabel(q.Sort), s.users.EditMode())
}

func (s *Shell) renderRoles() {
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tROLE\tPERMISSIONS")
	for _, r := range s.roles.Roles() {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID, r.Name, joinPerms(r.Permissions))
	}
	_ = tw.Flush()
	if id, perms := s.roles.Managed(); id != 0 {
		fmt.Fprintf(s.out, "managing role %d: [%s]\n", id, joinPerms(perms))
	}
}

func (s *Shell) help() {
	fmt.Fprintln(s.out, `views:  users | roles | help | quit
users:  list | reload | search <text> | filter <role|all> | sort <name|expiration|role|none>
        page <n> | next | prev | add <name> <projects> <role> <yyyy-mm-dd> [status]
        edit (toggle) | role <id> <role> | status <id> <status> | expire <id> <date> | delete <id>
roles:  list | add <name> <perm>[,<perm>...] | manage <id> | toggle <perm>[,<perm>...]
        save | delete | close`)
}

func sortLabel(k service.SortKey) string {
	if k == service.SortNone {
		return "none"
	}
	return string(k)
}

func joinPerms(ps []domain.Permission) string {
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		parts = append(parts, string(p))
	}
	return strings.Join(parts, ", ")
}

// splitPerms 逗号分隔；大小写不敏感地匹配权限目录
func splitPerms(s string) []domain.Permission {
	var out []domain.Permission
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p := domain.Permission(part)
		for _, c := range domain.PermissionCatalog {
			if strings.EqualFold(string(c), part) {
				p = c
				break
			}
		}
		out = append(out, p)
	}
	return out
}

func idArg(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, errors.New("missing id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func intArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, errors.New("missing number")
	}
	return strconv.Atoi(args[i])
}
