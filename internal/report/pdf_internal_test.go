package report

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
)

var lineOp = regexp.MustCompile(`(-?[\d.]+) (-?[\d.]+) m (-?[\d.]+) (-?[\d.]+) l S`)

// horizontalRules counts straight horizontal line segments in an
// uncompressed document.
func horizontalRules(doc []byte) int {
	n := 0
	for _, m := range lineOp.FindAllStringSubmatch(string(doc), -1) {
		if m[2] == m[4] && m[1] != m[3] {
			n++
		}
	}
	return n
}

func TestRenderPDF_closesTableOnEveryPage(t *testing.T) {
	slots, err := domain.ListSlots(domain.DefaultSlotMinutes)
	require.NoError(t, err)
	rep := domain.Report{
		Settings:    domain.Settings{DisplayName: "Vigil", DisplayBranch: "Centro"},
		GeneratedAt: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
	}
	for i, s := range slots {
		rep.Rows = append(rep.Rows, domain.Reservation{ID: fmt.Sprintf("r%d", i), Name: fmt.Sprintf("Person %d", i), Time: s.Label})
	}

	out, err := renderPDF(rep, false)
	require.NoError(t, err)

	pages := strings.Count(string(out), "/Type /Page") - strings.Count(string(out), "/Type /Pages")
	require.Greater(t, pages, 1)
	assert.Equal(t, pages, horizontalRules(out))
}
