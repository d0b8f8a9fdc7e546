// Command wardrobe は衣類管理・コーディネート提案APIサーバーを起動する。
//
// 使い方:
//
//	wardrobe [serve|migrate|healthcheck]
package main

import (
	"fmt"
	"os"

	// distrolessイメージにはtzdataが無いためバイナリに埋め込む
	_ "time/tzdata"

	"github.com/hitoshi/wardrobe/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "wardrobe: %v\n", err)
		os.Exit(1)
	}
}
