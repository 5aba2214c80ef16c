package docbase

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// configFile is the top level of an HCL configuration file.
type configFile struct {
	DocBase *configBlock `hcl:"docbase,block"`
}

type configBlock struct {
	APIToken  string `hcl:"api_token"`
	Team      string `hcl:"team"`
	BaseURL   string `hcl:"base_url,optional"`
	Timeout   string `hcl:"timeout,optional"`
	TLSVerify *bool  `hcl:"tls_verify,optional"`
}

// envFunc implements env("NAME") for configuration files.
var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "name", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return cty.StringVal(os.Getenv(args[0].AsString())), nil
	},
})

func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"env": envFunc,
		},
	}
}

// LoadConfig reads a Config from an HCL (or HCL JSON) file.
func LoadConfig(filename string) (*Config, error) {
	var f configFile
	if err := hclsimple.DecodeFile(filename, evalContext(), &f); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}
	return f.toConfig()
}

// ParseConfig reads a Config from HCL source. The filename is used for
// diagnostics and its extension selects the syntax (.hcl or .json).
func ParseConfig(filename string, src []byte) (*Config, error) {
	var f configFile
	if err := hclsimple.Decode(filename, src, evalContext(), &f); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return f.toConfig()
}

func (f *configFile) toConfig() (*Config, error) {
	if f.DocBase == nil {
		return nil, fmt.Errorf("missing docbase block")
	}
	b := f.DocBase

	cfg := DefaultConfig(b.APIToken, b.Team)
	if b.BaseURL != "" {
		cfg.BaseURL = b.BaseURL
	}
	if b.TLSVerify != nil {
		cfg.TLSVerify = b.TLSVerify
	}
	if b.Timeout != "" {
		d, err := time.ParseDuration(b.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", b.Timeout, err)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}
