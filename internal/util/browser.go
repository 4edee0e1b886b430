package util

import (
	"errors"
	"os/exec"
	"runtime"
)

// browserCommands 按平台返回候选打开命令，依次尝试
func browserCommands(goos, url string) [][]string {
	switch goos {
	case "windows":
		// rundll32 在 Windows 7 上比 cmd /c start 稳定
		return [][]string{
			{"rundll32", "url.dll,FileProtocolHandler", url},
			{"explorer", url},
		}
	case "darwin":
		return [][]string{{"open", url}}
	default:
		return [][]string{
			{"xdg-open", url},
			{"sensible-browser", url},
			{"firefox", url},
			{"google-chrome", url},
		}
	}
}

// OpenBrowser 打开默认浏览器，全部候选失败时返回第一个错误
func OpenBrowser(url string) error {
	var first error
	for _, args := range browserCommands(runtime.GOOS, url) {
		err := exec.Command(args[0], args[1:]...).Start()
		if err == nil {
			return nil
		}
		if first == nil {
			first = err
		}
	}
	if first == nil {
		first = errors.New("no browser command available")
	}
	return first
}
