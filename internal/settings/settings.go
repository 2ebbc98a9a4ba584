package settings

// Scheme selects how entry payloads are interpreted when reading.
type Scheme string

const (
	// SchemeAuto follows the per-entry encryption tag in the index.
	SchemeAuto Scheme = "auto"
	// SchemeRaw ignores the encryption tag and returns stored bytes.
	SchemeRaw Scheme = "raw"
	// SchemeBlock serves every payload through the block-cipher stream.
	// Requires a block key.
	SchemeBlock Scheme = "block"
)

// Valid reports whether s is one of the known scheme names.
func (s Scheme) Valid() bool {
	switch s {
	case SchemeAuto, SchemeRaw, SchemeBlock:
		return true
	}
	return false
}

// Settings mirrors the extraction options shared by the CLI commands.
type Settings struct {
	Password  string
	Scheme    Scheme
	BlockKey  []byte
	OutputDir string
	Pattern   string
	LongList  bool
}

func Default() Settings {
	return Settings{
		Scheme:    SchemeAuto,
		OutputDir: ".",
		Pattern:   "",
		LongList:  false,
	}
}
