package config

// CLIConfig is the configuration for fxtoken.
type CLIConfig struct {
	// Server is the fxgallery server address.
	Server string `koanf:"server" yaml:"server" json:"server"`

	// AdminKey authenticates curator commands.
	AdminKey string `koanf:"admin_key" yaml:"admin_key,omitempty" json:"admin_key,omitempty"`

	// CAFile is a PEM bundle for servers using a private CA.
	CAFile string `koanf:"ca_file" yaml:"ca_file,omitempty" json:"ca_file,omitempty"`

	// Output is the default output format: table, json or yaml.
	Output string `koanf:"output" yaml:"output" json:"output"`

	// Cipher selects the AEAD for local sealing.
	Cipher string `koanf:"cipher" yaml:"cipher" json:"cipher"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server: "127.0.0.1:5080",
		Output: "table",
		Cipher: "aes-gcm",
	}
}

// Keys lists the settable configuration keys.
var Keys = []string{"server", "admin_key", "ca_file", "output", "cipher"}
