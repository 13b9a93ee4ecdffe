// Package buildinfo carries the handful of facts that vary by build rather
// than by runtime configuration.
package buildinfo

import "os"

// DevBuild selects the isobin_dev namespace instead of isobin for config
// and data directories, so a development checkout never touches a real
// installation's state. It can be set at link time (-X
// github.com/isobin/isobin/internal/buildinfo.devBuildFlag=1) for release
// channels that want it compiled in; otherwise it follows ISOBIN_DEV.
var devBuildFlag string

var DevBuild = devBuildFlag == "1" || os.Getenv("ISOBIN_DEV") != ""
