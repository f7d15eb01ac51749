// Package auth implements account management and role-scoped login.
//
// Users hold one of two roles, admin or student, and log in through a
// matching portal: correct credentials presented to the wrong portal
// are rejected with a role mismatch, reported distinctly from a bad
// password. Sessions are cookie-backed and persisted in SQLite, so a
// logged-in client resumes its session across restarts.
//
// # Usage
//
//	service := auth.NewService(userRepo, cfg.Auth)
//	user, err := service.Authenticate(libraryID, password, entities.UserRoleStudent)
//
// Extract the caller in handlers:
//
//	user := auth.CurrentUser(c)
package auth
