package character

import "log"

// TriggerEvaluator 电影时刻触发评估器
//
// 按目录声明顺序扫描电影时刻，返回第一个"触发位置匹配且
// 命名条件为真"的时刻。对给定目录和状态快照，结果是确定的：
// 无随机性、无内部计数器。一次性（one-shot）门控由宿主或
// ProgressManager 负责，不在评估器内。
type TriggerEvaluator struct {
	catalog *Catalog
}

// NewTriggerEvaluator 创建触发评估器
func NewTriggerEvaluator(catalog *Catalog) *TriggerEvaluator {
	return &TriggerEvaluator{catalog: catalog}
}

// ShouldTrigger 评估指定位置和游戏状态下应触发的电影时刻
//
// 参数：
//   - location: 位置标识（如 "area-2-tournament-arena"）
//   - state: 游戏状态快照
//
// 返回：
//   - string: 时刻名称
//   - bool: 是否有匹配（false 时名称为空）
//
// 未知条件名评估为假（fail-closed），不会出错。
func (e *TriggerEvaluator) ShouldTrigger(location string, state GameState) (string, bool) {
	for _, moment := range e.catalog.Moments {
		if moment.TriggerLocation != location {
			continue
		}
		cond, ok := e.catalog.Conditions[moment.Condition]
		if !ok {
			// 目录构建时已校验；手工构造的目录走 fail-closed 路径
			log.Printf("[Trigger] %s: 时刻 %s 引用未知条件 %s，按假处理", e.catalog.ID, moment.Name, moment.Condition)
			continue
		}
		if cond.Evaluate(state) {
			return moment.Name, true
		}
	}
	return "", false
}
