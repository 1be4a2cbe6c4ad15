package launcher

// version is overridden at build time via -ldflags "-X ...launcher.version=...".
var version = "0.3.0"
