package runner

import (
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/reconpool/pkg/version"
)

const banner = `
                                                  __
   ________  _________  ____  ____  ____  ____  / /
  / ___/ _ \/ ___/ __ \/ __ \/ __ \/ __ \/ __ \/ / 
 / /  /  __/ /__/ /_/ / / / / /_/ / /_/ / /_/ / /  
/_/   \___/\___/\____/_/ /_/ .___/\____/\____/_/   
                          /_/
`

// showBanner is used to show the banner to the user
func showBanner() {
	gologger.Print().Msgf("%s\n", banner)
	gologger.Print().Msgf("\t\t%s\n\n", version.GetVersion())
}
