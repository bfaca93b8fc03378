package build_info

// Set during building the app
var (
	Version   = "dev"
	BuildDate = ""
)
