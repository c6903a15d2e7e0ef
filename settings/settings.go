// Package settings declares the per-SIM settings contract (§3, §6.4)
// and a YAML-file-backed provider (A.3).
package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// SimSettings is the per-subscriber configuration the engine queries by
// IMSI before building or posting a message (§3).
type SimSettings struct {
	UserAgent            string `yaml:"user_agent"`
	UserAgentProfile     string `yaml:"user_agent_profile"`
	MaxPduSize           int    `yaml:"max_pdu_size"`
	MaxPixels            int    `yaml:"max_pixels"`
	AllowDeliveryReports bool   `yaml:"allow_delivery_reports"`
	MMSCURL              string `yaml:"mmsc_url"`
	MMSProxy             string `yaml:"mms_proxy"`
}

// Defaults mirrors the C original's MMS_SETTINGS_DEFAULT_* constants.
func Defaults() SimSettings {
	return SimSettings{
		UserAgent:            "Mozilla/5.0 (Linux; MmsEngine)",
		UserAgentProfile:     "",
		MaxPduSize:           300 * 1024,
		MaxPixels:            3_000_000,
		AllowDeliveryReports: true,
	}
}

// Provider resolves per-IMSI settings. The dispatcher and task kinds
// consult it before every outbound request.
type Provider interface {
	SettingsForIMSI(imsi string) (SimSettings, error)
}

// FileProvider loads a static mapping of IMSI -> SimSettings from a YAML
// file, falling back to Defaults() for any field left unset and to a
// wildcard "*" entry for any IMSI with no specific entry.
type FileProvider struct {
	byIMSI map[string]SimSettings
}

type fileFormat struct {
	Sims map[string]SimSettings `yaml:"sims"`
}

// LoadFileProvider reads and parses a YAML settings file shaped like:
//
//	sims:
//	  "*":
//	    user_agent: "..."
//	  "234100000000000":
//	    mmsc_url: "http://mmsc.operator.example/"
func LoadFileProvider(path string) (*FileProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	}
	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("settings: parse %s: %w", path, err)
	}
	return &FileProvider{byIMSI: ff.Sims}, nil
}

// SettingsForIMSI implements Provider.
func (p *FileProvider) SettingsForIMSI(imsi string) (SimSettings, error) {
	merged := Defaults()
	if wildcard, ok := p.byIMSI["*"]; ok {
		mergeInto(&merged, wildcard)
	}
	if specific, ok := p.byIMSI[imsi]; ok {
		mergeInto(&merged, specific)
	}
	return merged, nil
}

func mergeInto(base *SimSettings, override SimSettings) {
	if override.UserAgent != "" {
		base.UserAgent = override.UserAgent
	}
	if override.UserAgentProfile != "" {
		base.UserAgentProfile = override.UserAgentProfile
	}
	if override.MaxPduSize != 0 {
		base.MaxPduSize = override.MaxPduSize
	}
	if override.MaxPixels != 0 {
		base.MaxPixels = override.MaxPixels
	}
	base.AllowDeliveryReports = override.AllowDeliveryReports
	if override.MMSCURL != "" {
		base.MMSCURL = override.MMSCURL
	}
	if override.MMSProxy != "" {
		base.MMSProxy = override.MMSProxy
	}
}
