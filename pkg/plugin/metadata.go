package plugin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/nodeplugin/proto"
)

// ValidateMetadata checks the invariants a descriptor must hold before a
// plugin may serve it.
func ValidateMetadata(md *proto.GetMetadataResponse) error {
	if md == nil {
		return fmt.Errorf("%w: metadata is nil", ErrInvalidMetadata)
	}

	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidMetadata}, args...)...))
	}

	if md.Name == "" {
		add("name is required")
	}
	if md.Version == "" {
		add("version is required")
	}
	if md.Category == proto.NodeCategory_CATEGORY_UNSPECIFIED || !md.Category.IsValid() {
		add("category %s is not allowed", md.Category)
	}
	if md.NodeType == proto.NodeType_NODE_TYPE_UNSPECIFIED || !md.NodeType.IsValid() {
		add("node type %s is not allowed", md.NodeType)
	}

	caps := md.GetCapabilities()
	switch {
	case caps == nil:
		add("capabilities are required")
	case caps.MaxConcurrent <= 0:
		add("max_concurrent must be positive, got %d", caps.MaxConcurrent)
	case caps.DefaultTimeoutMs < 0:
		add("default_timeout_ms must not be negative, got %d", caps.DefaultTimeoutMs)
	}

	for _, err := range validateDefs("input", md.InputParameters) {
		add("%v", err)
	}
	for _, err := range validateDefs("output", md.OutputParameters) {
		add("%v", err)
	}

	return errors.Join(errs...)
}

func validateDefs(kind string, defs []*proto.ParameterDef) []error {
	var errs []error
	seen := make(map[string]bool, len(defs))
	for i, def := range defs {
		if def == nil {
			errs = append(errs, fmt.Errorf("%s parameter %d is nil", kind, i))
			continue
		}
		if def.Name == "" {
			errs = append(errs, fmt.Errorf("%s parameter %d has no name", kind, i))
			continue
		}
		if seen[def.Name] {
			errs = append(errs, fmt.Errorf("duplicate %s parameter %q", kind, def.Name))
		}
		seen[def.Name] = true

		if def.Type == proto.ParameterType_PARAM_TYPE_UNSPECIFIED || !def.Type.IsValid() {
			errs = append(errs, fmt.Errorf("%s parameter %q has type %s", kind, def.Name, def.Type))
			continue
		}
		for _, opt := range def.Options {
			if opt.GetValue().IsNull() || !AcceptsValue(def.Type, opt.GetValue()) {
				errs = append(errs, fmt.Errorf("%s parameter %q has option %q of the wrong type", kind, def.Name, opt.GetLabel()))
			}
		}
		if dv := def.GetDefaultValue(); !dv.IsNull() {
			if err := ValidateValue(def, dv); err != nil {
				errs = append(errs, fmt.Errorf("%s parameter %q default: %w", kind, def.Name, err))
			}
		}
	}
	return errs
}

// SupportedFeatures lists the optional features a plugin with these
// capabilities offers, as reported by HealthCheck.
func SupportedFeatures(caps *proto.Capabilities) []string {
	if caps == nil {
		return nil
	}
	var features []string
	if caps.SupportsStreaming {
		features = append(features, FeatureStreaming)
	}
	if caps.SupportsCancel {
		features = append(features, FeatureCancel)
	}
	if caps.SupportsRetry {
		features = append(features, FeatureRetry)
	}
	if caps.SupportsBatch {
		features = append(features, FeatureBatch)
	}
	if caps.RequiresCredential {
		features = append(features, FeatureCredential)
	}
	return features
}

// CheckProtocolVersion accepts an empty token or one whose major version
// matches ProtocolVersion.
func CheckProtocolVersion(token string) error {
	if token == "" {
		return nil
	}
	if major(token) != major(ProtocolVersion) {
		return fmt.Errorf("%w: peer speaks %s, plugin speaks %s", ErrProtocolVersion, token, ProtocolVersion)
	}
	return nil
}

func major(version string) string {
	version = strings.TrimPrefix(version, "v")
	if i := strings.IndexByte(version, '.'); i >= 0 {
		return version[:i]
	}
	return version
}
