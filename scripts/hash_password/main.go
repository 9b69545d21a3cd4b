package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/songbird/internal/auth"
)

// 生成 ADMIN_PASSWORD 可用的 bcrypt 哈希，避免在环境变量中保存明文密码。
func main() {
	password := ""
	if len(os.Args) > 1 {
		password = os.Args[1]
	} else {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatal("read password: ", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatal("hash password: ", err)
	}
	fmt.Println(hash)
}
