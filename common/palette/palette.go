// Package palette maps workspace identifiers to a fixed set of avatar colors
// so the same workspace renders with the same color across sessions.
package palette

// Colors is ordered; reordering it changes every workspace's color.
var Colors = []string{
	"bg-blue-500 hover:bg-blue-600 text-white",
	"bg-emerald-500 hover:bg-emerald-600 text-white",
	"bg-purple-500 hover:bg-purple-600 text-white",
	"bg-amber-500 hover:bg-amber-600 text-white",
	"bg-rose-500 hover:bg-rose-600 text-white",
	"bg-indigo-500 hover:bg-indigo-600 text-white",
	"bg-cyan-500 hover:bg-cyan-600 text-white",
	"bg-pink-500 hover:bg-pink-600 text-white",
}

// IndexFor returns the palette bucket for id: the sum of its code points
// modulo the palette size. An empty id maps to 0.
func IndexFor(id string) int {
	sum := 0
	for _, r := range id {
		sum += int(r)
	}
	return sum % len(Colors)
}

// ColorFor returns the palette entry for id.
func ColorFor(id string) string {
	return Colors[IndexFor(id)]
}
