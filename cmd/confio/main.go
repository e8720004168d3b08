// confio loads, converts and validates JSON, YAML, TOML and XML files.
package main

import "github.com/thirteen37/confio/internal/cmd"

func main() {
	cmd.Execute()
}
