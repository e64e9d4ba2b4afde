package builtin

import "strings"

// joinArgs rejoins a varargs-style command tail into a single string,
// matching how the teacher's cmd.Varargs parameter reassembles trailing
// whitespace-separated tokens.
func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
