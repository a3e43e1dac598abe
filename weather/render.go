package weather

import (
	"fmt"
	"io"
	"strings"
)

const divider = "-----------------------"

// Format renders the temperature summary for r.
func Format(r *Report, units Units) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", divider)
	fmt.Fprintln(&b, r.Name)
	fmt.Fprintln(&b, "---")
	fmt.Fprintf(&b, "Temperature : %s\n", units.Display(r.Main.Temp))
	fmt.Fprintf(&b, "Min : %s   /  Max : %s\n", units.Display(r.Main.TempMin), units.Display(r.Main.TempMax))
	fmt.Fprintf(&b, "Feels like : %s\n", units.Display(r.Main.FeelsLike))
	fmt.Fprintln(&b, divider)
	return b.String()
}

func Render(w io.Writer, r *Report, units Units) error {
	_, err := io.WriteString(w, Format(r, units))
	return err
}
