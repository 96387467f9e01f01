package tools

// alwaysSkipDirs are directory names file_list always prunes regardless of
// gitignore settings — spec §4.6: "Always skips .git/".
var alwaysSkipDirs = map[string]bool{
	".git": true,
}

func shouldAlwaysSkipDir(name string) bool {
	return alwaysSkipDirs[name]
}
