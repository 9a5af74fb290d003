package config

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/creachadair/atomicfile"
	"github.com/spf13/viper"
)

var configTemplate *template.Template

func init() {
	var err error
	if configTemplate, err = template.New("configFileTemplate").Parse(defaultConfigTemplate); err != nil {
		panic(err)
	}
}

// WriteConfigFile renders config using the template and writes it to
// the config file path under the config root.
func WriteConfigFile(cfg *Config) error {
	var buffer bytes.Buffer
	if err := configTemplate.Execute(&buffer, cfg); err != nil {
		return fmt.Errorf("render config template: %w", err)
	}
	return atomicfile.WriteData(cfg.ConfigFilePath(), buffer.Bytes(), 0600)
}

// LoadConfigFile parses the TOML config file at path into a Config
// on top of the defaults. Durations are accepted as strings like
// "500ms".
func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Note: any changes to the comments/variables/mapstructure
// must be reflected in the appropriate struct in config/config.go
const defaultConfigTemplate = `# This is a TOML config file.
# For more information, see https://github.com/toml-lang/toml

# The verifier takes everything it cannot check from the node at
# rpc.remote and verifies it locally. Relative paths resolve against
# the --home root.

# Verbosity of the console log: trace, debug, info, warn, error.
log-level = "{{ .LogLevel }}"

# Log output format: plain or json.
log-format = "{{ .LogFormat }}"

#######################################################
###          RPC Node Configuration Options         ###
#######################################################
[rpc]

# JSON-RPC endpoint of the node answering queries.
remote = "{{ .RPC.Remote }}"

#######################################################
###        Verification Configuration Options       ###
#######################################################
[light]

# Number of slots scanned for votes after a verified slot.
window = {{ .Light.Window }}

# Poll interval while data has not yet reached the node.
retry-interval = "{{ .Light.RetryInterval }}"

# Concurrent block fetches during a vote scan. 1 fetches
# sequentially.
fetch-workers = {{ .Light.FetchWorkers }}

#######################################################
###       Probe Transaction Configuration Options   ###
#######################################################
[track]

# Keypair funding the probe transfer.
payer-key-file = "{{ .Track.PayerKeyFile }}"

# Keypair receiving the probe transfer; generated when absent.
recipient-key-file = "{{ .Track.RecipientKeyFile }}"

# Lamports moved by the probe transfer.
lamports = {{ .Track.Lamports }}
`
