// Package users manages registered accounts.
//
// PostgresStore reads and writes the users table and is the account lookup
// behind login and bearer authentication. Emails are stored lower-cased and
// trimmed, and every lookup normalizes its input the same way.
//
// Registration rules live in validation.go:
//
//	if err := users.ValidatePassword(pw); err != nil {
//	    // err.Error() is safe to return to the client
//	}
package users
