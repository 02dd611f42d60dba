package clipboard

const copyModifier = "ctrl"

func copySupported() bool { return true }
