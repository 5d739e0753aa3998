package ports

// AccessControl tells which accounts hold the privileged roles.
type AccessControl interface {
	IsAdmin(account string) bool
	IsDepositor(account string) bool
}
