package roster

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/noah-isme/teacher-admin/internal/models"
)

// PageSize is the fixed number of rows per list page.
const PageSize = 5

// Page is one slice of a filtered, sorted record set.
type Page struct {
	Rows       []models.Teacher
	Number     int
	TotalCount int
	TotalPages int
	// Numbers holds every page button, 1..TotalPages.
	Numbers []int
	// Empty is set when the filtered set has no records at all.
	Empty bool
}

// Paginate cuts page number (1-based) out of records. Pages below 1 clamp to 1;
// pages past the end yield no rows but keep the totals.
func Paginate(records []models.Teacher, number int) Page {
	if number < 1 {
		number = 1
	}
	total := len(records)
	pages := (total + PageSize - 1) / PageSize

	p := Page{
		Number:     number,
		TotalCount: total,
		TotalPages: pages,
		Numbers:    make([]int, pages),
		Empty:      total == 0,
		Rows:       []models.Teacher{},
	}
	for i := range p.Numbers {
		p.Numbers[i] = i + 1
	}

	start := (number - 1) * PageSize
	if start >= total {
		return p
	}
	end := start + PageSize
	if end > total {
		end = total
	}
	p.Rows = records[start:end]
	return p
}

// Pagination converts the page to the response metadata shape.
func (p Page) Pagination() models.Pagination {
	return models.Pagination{
		Page:       p.Number,
		PageSize:   PageSize,
		TotalCount: p.TotalCount,
		TotalPages: p.TotalPages,
	}
}

// Fingerprint identifies a filter combination. Lists echo it back with the
// next request so a changed filter can be detected without server state.
func Fingerprint(f models.FilterState) string {
	h := fnv.New64a()
	for _, part := range []string{
		strings.ToLower(f.Name),
		normalize(f.Status),
		normalize(f.Role),
		normalize(f.Location),
		bound(f.CreatedFrom),
		bound(f.CreatedTo),
	} {
		_, _ = h.Write([]byte(part))
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// ResolvePage returns the page to show: 1 when the caller's fingerprint was
// taken under a different filter, the requested page otherwise.
func ResolvePage(requested int, previous string, f models.FilterState) int {
	if previous != "" && previous != Fingerprint(f) {
		return 1
	}
	if requested < 1 {
		return 1
	}
	return requested
}

func normalize(v string) string {
	if !models.IsSet(v) {
		return ""
	}
	return v
}

func bound(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
