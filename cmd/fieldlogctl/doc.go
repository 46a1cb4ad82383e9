// Command fieldlogctl administers a FieldLog store: it applies migrations,
// loads YAML fixtures, lists deployments and issues operator access tokens.
// It reads the same JSON configuration file as the server.
package main
