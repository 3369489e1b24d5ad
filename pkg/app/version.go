package app

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// 构建信息通过 -ldflags "-X github.com/lk2023060901/coinbot/pkg/app.Version=v1.2.0" 注入，
// 未注入时尝试从模块构建信息中读取 VCS 字段
var (
	Version   = ""
	GitCommit = ""
	BuildDate = ""
	AppName   = "coinbot"
)

// Info 构建信息，状态接口原样返回
type Info struct {
	AppName   string `json:"app_name"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo 当前二进制的构建信息
func GetInfo() Info {
	info := Info{
		AppName:   AppName,
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.Version == "" && bi.Main.Version != "" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.GitCommit == "":
				info.GitCommit = s.Value
			case s.Key == "vcs.time" && info.BuildDate == "":
				info.BuildDate = s.Value
			}
		}
	}
	for _, p := range []*string{&info.Version, &info.GitCommit, &info.BuildDate} {
		if *p == "" {
			*p = "unknown"
		}
	}
	return info
}

func (i Info) String() string {
	commit := i.GitCommit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return fmt.Sprintf("%s %s (%s, %s, %s %s)", i.AppName, i.Version, commit, i.BuildDate, i.GoVersion, i.Platform)
}
