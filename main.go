package main

import (
	"fmt"

	_ "github.com/cachekit/cachekit/cache"
	_ "github.com/cachekit/cachekit/logger"
	_ "github.com/cachekit/cachekit/sys"
)

func main() {
	fmt.Println("cachekit")
}
