package model

// ClusterDefinition names one thematic cluster and the keywords that route
// sub-queries into it. Definition order is significant: when a sub-query
// matches keywords from more than one definition, the earliest declared
// definition wins, so more specific themes must precede generic ones.
type ClusterDefinition struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Cluster groups routed sub-queries under one thematic label. Built once by
// the clustering pass and consumed once by brief synthesis.
type Cluster struct {
	Name    string           `json:"name"`
	Members []RoutedSubQuery `json:"members"`
}
