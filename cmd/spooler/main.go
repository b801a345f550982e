// Command spooler runs print clients and printers around a shared,
// capacity-bounded print queue.
//
//	spooler <clients> <printers> [flags]
//
// Exit status is 0 after a normal shutdown, 2 for invalid arguments or
// configuration and 1 when the queue cannot be created or an actor fails.
package main

import (
	"context"
	"os"

	"github.com/tebeka/atexit"
)

func main() {
	atexit.Exit(execute(context.Background(), os.Args[1:], os.Stderr))
}
