package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"planbench/internal/service"
)

// runMenu 单次交互菜单：读一个选项，执行后返回
func runMenu(ctx context.Context, svc *service.ServiceContext, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "PLANBENCH 实验执行器")
	fmt.Fprintln(out, "支持黑名单与节流的调试快照")
	fmt.Fprintln(out, strings.Repeat("=", 70))
	fmt.Fprintln(out, "\nOptions:")
	fmt.Fprintln(out, "1. Run all missing experiments")
	fmt.Fprintln(out, "2. Show status only")
	fmt.Fprintln(out, "3. Show blacklisted experiments")
	fmt.Fprintln(out, "4. Exit")
	fmt.Fprint(out, "\nChoice (1-4): ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("读取选项失败: %w", err)
	}

	switch strings.TrimSpace(line) {
	case "1":
		sum, err := svc.Runner.RunAll(ctx)
		if sum != nil {
			printSummary(out, sum)
		}
		return err
	case "2":
		printStatus(out, svc.Runner.Status())
	case "3":
		printBlacklist(out, svc.Registry.Entries())
	case "4", "":
	default:
		fmt.Fprintln(out, "无效选项")
	}
	return nil
}
