package model

// Action identifies a security-relevant user action for the activity log.
type Action string

const (
	ActionLogin          Action = "LOGIN"
	ActionRegister       Action = "REGISTER"
	ActionLogout         Action = "LOGOUT"
	ActionPasswordChange Action = "PASSWORD_CHANGE"
)
