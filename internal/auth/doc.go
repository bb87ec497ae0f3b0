// Package auth handles replay server credentials.
//
// The replay login frame carries a 6-byte user and a 10-byte password in
// clear text. Servers keep bcrypt hashes of the accepted passwords and check
// each login with a Verifier. Clients resolve their password from a flag,
// an environment variable, a file or an interactive terminal prompt.
package auth
