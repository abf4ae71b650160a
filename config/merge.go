package config

// mergeConfigs overlays override onto base field by field. Empty override
// fields keep the base value; exclude lists are concatenated.
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}
	if override.Target != "" {
		result.Target = override.Target
	}
	if override.Token != "" {
		result.Token = override.Token
	}
	if override.Transport != "" {
		result.Transport = override.Transport
	}
	if override.Interval != "" {
		result.Interval = override.Interval
	}
	if override.Timeout != "" {
		result.Timeout = override.Timeout
	}
	if override.Editor.Address != "" {
		result.Editor.Address = override.Editor.Address
	}

	if len(override.Exclude) > 0 {
		result.Exclude = append(append([]string{}, base.Exclude...), override.Exclude...)
	}

	result.Sources = append(append([]string{}, base.Sources...), override.Sources...)

	// Merge extensions
	if override.Extensions != nil {
		merged := make(map[string]interface{}, len(base.Extensions)+len(override.Extensions))
		for key, value := range base.Extensions {
			merged[key] = value
		}
		for key, value := range override.Extensions {
			// If both base and override have the same extension key, merge them
			if baseMap, ok := merged[key].(map[string]interface{}); ok {
				if overrideMap, ok := value.(map[string]interface{}); ok {
					mergedMap := make(map[string]interface{}, len(baseMap)+len(overrideMap))
					for k, v := range baseMap {
						mergedMap[k] = v
					}
					for k, v := range overrideMap {
						mergedMap[k] = v
					}
					merged[key] = mergedMap
					continue
				}
			}
			merged[key] = value
		}
		result.Extensions = merged
	}

	return &result
}
