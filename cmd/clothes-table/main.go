package main

import (
	"fmt"
	"os"

	"ClothesStore/internal/app"
	"ClothesStore/internal/clothes"
)

// The table window shows the listing as a two-column grid instead of text.
func main() {
	if err := app.Run("clothes-table", clothes.TableVariant); err != nil {
		fmt.Fprintln(os.Stderr, "clothes-table:", err)
		os.Exit(1)
	}
}
