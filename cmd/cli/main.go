// iselog - Cisco ISE authentication log analyzer
//
// iselog extracts structured fields from ISE authentication logs and reports
// success rates, failure causes, suspicious activity and an hourly timeline.
package main

import (
	"os"

	"github.com/ccollicutt/iselog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
