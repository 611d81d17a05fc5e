package digest

import (
	"encoding/json"
	"fmt"
)

// MarshalText encodes the algorithm as its canonical identifier, so it
// serializes as a name rather than an integer in JSON and YAML.
func (a Algorithm) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes a canonical algorithm identifier.
func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalJSON encodes the set as a name→digest object using canonical
// algorithm identifiers.
func (ds DigestSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(ds.toNames())
}

// UnmarshalJSON decodes a name→digest object, rejecting unknown identifiers.
func (ds *DigestSet) UnmarshalJSON(data []byte) error {
	var named map[string]string
	if err := json.Unmarshal(data, &named); err != nil {
		return err
	}
	set, err := fromNames(named)
	if err != nil {
		return err
	}
	*ds = set
	return nil
}

// MarshalYAML encodes the set as a name→digest mapping.
func (ds DigestSet) MarshalYAML() (interface{}, error) {
	return ds.toNames(), nil
}

// UnmarshalYAML decodes a name→digest mapping, rejecting unknown identifiers.
func (ds *DigestSet) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var named map[string]string
	if err := unmarshal(&named); err != nil {
		return err
	}
	set, err := fromNames(named)
	if err != nil {
		return err
	}
	*ds = set
	return nil
}

// toNames converts the set to a map keyed by canonical identifier.
func (ds DigestSet) toNames() map[string]string {
	named := make(map[string]string, len(ds))
	for algo, value := range ds {
		named[algo.String()] = value
	}
	return named
}

// fromNames converts a name-keyed map back into a DigestSet.
func fromNames(named map[string]string) (DigestSet, error) {
	set := make(DigestSet, len(named))
	for name, value := range named {
		algo, err := Parse(name)
		if err != nil {
			return nil, fmt.Errorf("digest set: %w", err)
		}
		set[algo] = value
	}
	return set, nil
}
