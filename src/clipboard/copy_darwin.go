package clipboard

const copyModifier = "cmd"

func copySupported() bool { return true }
