// Package cli is the authctl command tree.
//
// Every command dials the gophauth server, loads the saved token pair from
// the token file and writes back any pair obtained by login or by a
// transparent refresh. Passwords are read from the terminal without echo
// unless --password-stdin is given.
package cli
