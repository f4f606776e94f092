package main

import (
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"git.fiblab.net/sim/syncer/v3"
	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/signal-priority-sim/task"
	"github.com/tsinghua-fib-lab/signal-priority-sim/utils/config"
	"github.com/tsinghua-fib-lab/signal-priority-sim/utils/input"
)

var (
	// 分布式模式syncer地址，如果设置为空则激活独立部署模式
	syncerAddr = flag.String("syncer", "", "syncer address (empty means standalone mode), e.g. http://localhost:53001")
	// 模拟任务名，为空时随机生成
	job = flag.String("job", "", "the name of the whole simulation task (empty means a random uuid)")
	// 本程序监听的gRPC地址，为空时不提供RPC服务
	grpcAddr = flag.String("listen", "", "gRPC listening address (empty means no RPC service), e.g. :51102")
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "main")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	// 获取配置
	c, err := input.LoadConfig(*configPath, *configData)
	if errors.Is(err, input.ErrNoConfig) {
		log.Warn("no config specified, using defaults")
		c = config.Default()
	} else if err != nil {
		log.Panicf("%v", err)
	}
	log.Infof("%+v", c)

	if *job == "" {
		*job = uuid.NewString()
	}
	var sidecar *syncer.Sidecar
	if *grpcAddr != "" {
		sidecar = syncer.NewSidecar(task.SelfName, *grpcAddr, *syncerAddr)
	}
	t, err := task.NewContext(*job, c, sidecar, sidecar != nil)
	if err != nil {
		log.Panicf("init err: %v", err)
	}
	if sidecar != nil {
		if err := t.WaitForServing(*grpcAddr); err != nil {
			log.Panicf("%v", err)
		}
		log.Infof("serving on %v", *grpcAddr)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		log.Info("interrupted, closing")
		t.Close()
	}()

	t.Run()
}
