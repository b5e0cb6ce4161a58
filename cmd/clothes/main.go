package main

import (
	"fmt"
	"os"

	"ClothesStore/internal/app"
	"ClothesStore/internal/clothes"
)

func main() {
	if err := app.Run("clothes", clothes.TextVariant); err != nil {
		fmt.Fprintln(os.Stderr, "clothes:", err)
		os.Exit(1)
	}
}
