package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/costlocker/reports/pkg/version"
)

// displayWelcomeBanner prints the ASCII logo and the build version.
func displayWelcomeBanner(out io.Writer) {
	banner := `
   ____          _   _            _               ____                       _
  / ___|___  ___| |_| | ___   ___| | _____ _ __  |  _ \ ___ _ __   ___  _ __| |_ ___
 | |   / _ \/ __| __| |/ _ \ / __| |/ / _ \ '__| | |_) / _ \ '_ \ / _ \| '__| __/ __|
 | |__| (_) \__ \ |_| | (_) | (__|   <  __/ |    |  _ <  __/ |_) | (_) | |  | |_\__ \
  \____\___/|___/\__|_|\___/ \___|_|\_\___|_|    |_| \_\___| .__/ \___/|_|   \__|___/
                                                           |_|
        `
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Fprintln(out, red(banner))

	fmt.Fprintln(out, blue(fmt.Sprintf("Costlocker Reports CLI (v%s)", version.Current())))
}
