package export

import (
	"github.com/sanity-io/litter"

	"localboard/internal/state"
)

var dumpOptions = litter.Options{
	StripPackageNames: true,
	HidePrivateFields: true,
	Separator:         " ",
}

// Dump returns a readable listing of actions for debugging.
func Dump(actions []state.Action) string {
	return dumpOptions.Sdump(actions)
}
