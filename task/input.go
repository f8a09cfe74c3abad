package task

import (
	"context"
	"errors"

	"git.fiblab.net/general/common/v2/mongoutil"
	"github.com/tsinghua-fib-lab/logreplay-sim/scenario"
	"github.com/tsinghua-fib-lab/logreplay-sim/utils/config"
)

// newStore 根据配置创建日志记录存储
// 功能：目录优先，其次MongoDB；single模式的记录只包含轨迹
// 参数：rc-运行时配置
// 返回：存储、释放资源的函数
// 算法说明：
// 1. 配置了目录时，single模式直接使用该目录，其余模式使用{dir}/{partition}_parsed
// 2. 否则配置了db/col时连接MongoDB，single模式不按分区过滤
func newStore(rc *config.RuntimeConfig) (scenario.Store, func(), error) {
	in := rc.All.Input.Records
	single := rc.S.Mode == config.ModeSingle
	switch {
	case in.Dir != "":
		if single {
			return scenario.NewDirStore(in.Dir, scenario.TracksOnly()), func() {}, nil
		}
		return scenario.NewDirStore(scenario.PartitionDir(in.Dir, rc.S.Partition)), func() {}, nil
	case in.DB != "" && in.Col != "":
		if rc.All.Input.URI == "" {
			return nil, nil, errors.New("input.uri is required for records in mongo")
		}
		client := mongoutil.NewClient(rc.All.Input.URI)
		partition := rc.S.Partition
		if single {
			partition = ""
		}
		store := scenario.NewMongoStore(client.Database(in.DB).Collection(in.Col), partition, single)
		return store, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warnf("failed to disconnect mongo: %v", err)
			}
		}, nil
	default:
		return nil, nil, errors.New("input.records.dir or input.records.db/col must be set")
	}
}

// newOverrides 根据配置创建出生点覆盖来源
func newOverrides(rc *config.RuntimeConfig) scenario.OverrideSource {
	if dir := rc.All.Input.Records.AgentPos; dir != "" {
		log.Infof("use spawn overrides in %s", dir)
		return scenario.NewDirOverrides(dir)
	}
	return scenario.NoOverrides{}
}
