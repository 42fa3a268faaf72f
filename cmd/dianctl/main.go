// Command dianctl herramientas de operador para va-dian: extraer un AttachedDocument,
// resolver el tercero de una línea contable y emitir tokens de la API.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
