package configloader

import "github.com/yaklabco/mdsync/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Optional flags: override overwrites base if set, so a layer can turn a default off
//   - Slices: override replaces base entirely if override is non-nil
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	if override.Flavor != "" {
		result.Flavor = override.Flavor
	}
	if override.Zoom != 0 {
		result.Zoom = override.Zoom
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.Out != "" {
		result.Out = override.Out
	}
	mergeFlag(&result.LineSync, override.LineSync)

	if override.Server.Addr != "" {
		result.Server.Addr = override.Server.Addr
	}

	if override.Watch.Debounce != 0 {
		result.Watch.Debounce = override.Watch.Debounce
	}
	mergeFlag(&result.Watch.Poll, override.Watch.Poll)

	if override.Render.Style != "" {
		result.Render.Style = override.Render.Style
	}
	if override.Render.MaxBytes != 0 {
		result.Render.MaxBytes = override.Render.MaxBytes
	}
	mergeFlag(&result.Render.Highlight, override.Render.Highlight)
	mergeFlag(&result.Render.DetectLanguage, override.Render.DetectLanguage)
	mergeFlag(&result.Render.Sanitize, override.Render.Sanitize)
	mergeFlag(&result.Render.UnsafeHTML, override.Render.UnsafeHTML)

	if override.Ignore != nil {
		result.Ignore = append([]string(nil), override.Ignore...)
	}

	return result
}

func mergeFlag(dst **bool, override *bool) {
	if override != nil {
		*dst = config.Ptr(*override)
	}
}
