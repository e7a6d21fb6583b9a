package models

import "slices"

// NodeTypeSpec declares the parameter schema of a node type.
type NodeTypeSpec struct {
	TypeName       string            `json:"type"                yaml:"type"`
	Name           string            `json:"name"                yaml:"name"`
	Description    string            `json:"description"         yaml:"description"`
	Category       CategoryType      `json:"category"            yaml:"category"`
	RequiredParams []string          `json:"required_params"     yaml:"required"`
	OptionalParams []string          `json:"optional_params"     yaml:"optional"`
	Types          map[string]string `json:"types,omitempty"     yaml:"types"`
	Formats        map[string]string `json:"formats,omitempty"   yaml:"formats"`
	Questions      map[string]string `json:"questions,omitempty" yaml:"questions"`
	Example        map[string]any    `json:"example,omitempty"   yaml:"example"`
}

// Declares reports whether param is a required or optional parameter of the type.
func (s *NodeTypeSpec) Declares(param string) bool {
	return s.Requires(param) || slices.Contains(s.OptionalParams, param)
}

// Requires reports whether param is required by the type.
func (s *NodeTypeSpec) Requires(param string) bool {
	return slices.Contains(s.RequiredParams, param)
}

// Params returns required parameters followed by optional ones, in declaration order.
func (s *NodeTypeSpec) Params() []string {
	params := make([]string, 0, len(s.RequiredParams)+len(s.OptionalParams))
	params = append(params, s.RequiredParams...)

	return append(params, s.OptionalParams...)
}
