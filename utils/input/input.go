package input

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/tsinghua-fib-lab/signal-priority-sim/utils/config"
	"gopkg.in/yaml.v2"
)

var ErrNoConfig = errors.New("config file or config data must be specified")

// LoadConfig 加载配置
// 功能：从配置文件路径或Base64编码的配置数据中读取YAML配置
// 参数：path-配置文件路径，data-Base64编码的配置数据（path为空时使用）
// 返回：合并了默认值的配置对象
// 说明：使用UnmarshalStrict，未知字段视为错误；YAML中未出现的字段保留默认值
func LoadConfig(path string, data string) (config.Config, error) {
	var file []byte
	var err error
	switch {
	case path != "":
		if file, err = os.ReadFile(path); err != nil {
			return config.Config{}, fmt.Errorf("config file load err: %w", err)
		}
	case data != "":
		if file, err = base64.StdEncoding.DecodeString(data); err != nil {
			return config.Config{}, fmt.Errorf("config data load err: %w", err)
		}
	default:
		return config.Config{}, ErrNoConfig
	}
	return Parse(file)
}

// Parse 解析YAML配置
func Parse(file []byte) (config.Config, error) {
	c := config.Default()
	if err := yaml.UnmarshalStrict(file, &c); err != nil {
		return config.Config{}, fmt.Errorf("config parse err: %w", err)
	}
	return c, nil
}
