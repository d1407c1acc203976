// Command event-scout scrapes event-discovery pages and writes the listings to a shared table.
package main

import "github.com/pfrederiksen/event-scout/internal/cli"

func main() {
	cli.Execute()
}
