//go:build !remote

package fstest

import (
	"testing"

	errname "github.com/Antonboom/errname/pkg/analyzer"
	"golang.org/x/tools/go/analysis/passes/atomicalign"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilfunc"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/shift"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"golang.org/x/tools/go/analysis/passes/unusedwrite"

	"lesiw.io/checker"
	"lesiw.io/linelen"
)

// TestCheck runs the static analyzers. Store clients hold mutexes and
// request contexts, so copylock and lostcancel run alongside the
// general passes.
func TestCheck(t *testing.T) {
	checker.Run(t,
		atomicalign.Analyzer,
		copylock.Analyzer,
		errname.New(),
		errorsas.Analyzer,
		linelen.Analyzer,
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		nilfunc.Analyzer,
		nilness.Analyzer,
		printf.Analyzer,
		shadow.Analyzer,
		shift.Analyzer,
		unusedresult.Analyzer,
		unusedwrite.Analyzer,
	)
}
