package version

import "fmt"

// DSDAVersion indicates what version of dsda the binary belongs to
var DSDAVersion string

// GitCommit indicates which git commit the binary was built from
var GitCommit string

// String returns a pretty string concatenation of DSDAVersion and GitCommit
func String() string {
	return fmt.Sprintf("DSDA Version:    %s\n Git commit: %s\n", DSDAVersion, GitCommit)
}
