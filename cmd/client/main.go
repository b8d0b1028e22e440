package main

import (
	"flag"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/property-tycoon/internal/logger"
	"github.com/palemoky/property-tycoon/internal/network/client"
	"github.com/palemoky/property-tycoon/internal/ui"
)

func main() {
	serverAddr := flag.String("server", "localhost:1780", "服务器地址")
	encoding := flag.String("encoding", "json", "推送编码 (json|proto)")
	flag.Parse()

	// 界面占用终端，日志写入文件
	if err := logger.Init(); err != nil {
		log.Printf("初始化日志失败: %v", err)
	}
	defer logger.Close()

	model := ui.NewModel(client.New(fmt.Sprintf("http://%s", *serverAddr)), *encoding)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("启动客户端时出错: %v", err)
	}
}
