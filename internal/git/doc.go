// Package git inspects the site repository with go-git and classifies
// failures of git commands run through the command runner.
//
// Mutating operations (add, commit, push, subtree split) go through the git
// CLI because go-git has no subtree support; this package only opens the
// repository, reads HEAD and turns command output into ClassifiedErrors.
package git
