//go:build bench

package tex2html

import (
	"fmt"
	"strings"
	"testing"
)

// BenchmarkResolvePoolSize benchmarks pool size calculation.
func BenchmarkResolvePoolSize(b *testing.B) {
	for _, w := range []int{0, 1, 2, 4, 8} {
		b.Run(workerName(w), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = ResolvePoolSize(w)
			}
		})
	}
}

func workerName(w int) string {
	if w == 0 {
		return "auto"
	}
	return fmt.Sprintf("%d", w)
}

// BenchmarkSessionPoolAcquireRelease benchmarks the acquire/release cycle.
// Sessions never typeset here, so no browser starts.
func BenchmarkSessionPoolAcquireRelease(b *testing.B) {
	for _, size := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("size_%d", size), func(b *testing.B) {
			pool := NewSessionPool(size)
			defer pool.Close()

			sessions := make([]*Session, size)
			for i := range sessions {
				sessions[i], _ = pool.Acquire()
			}
			for _, s := range sessions {
				pool.Release(s)
			}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s, _ := pool.Acquire()
				pool.Release(s)
			}
		})
	}
}

// BenchmarkRender benchmarks the full convert and sanitize path.
func BenchmarkRender(b *testing.B) {
	doc := strings.Repeat("\\textbf{Bold} and $x^2$ with \\href{https://example.com}{a link}.\n\n"+
		"\\begin{itemize}\\item one\\item two\\end{itemize}\n\n"+
		"\\begin{tabular}{cc}a & b \\\\ c & d\\end{tabular}\n\n", 20)

	b.ReportAllocs()
	b.SetBytes(int64(len(doc)))
	for i := 0; i < b.N; i++ {
		_ = Render(doc, RenderOptions{})
	}
}

// BenchmarkScheduler_Schedule benchmarks coalescing many requests into one pass.
func BenchmarkScheduler_Schedule(b *testing.B) {
	s := NewScheduler(&countingLoader{engine: &recordingEngine{}})
	defer s.Close()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		s.Schedule("#a", "#b")
	}
}
