// Package character 实现角色呈现门面：
// 类型化的角色目录（Catalog）、电影时刻触发评估器（TriggerEvaluator）
// 以及组合动画引擎与角色数据的呈现器（Presenter）。
//
// 三个角色（Eli、Maya、Stanley）共享同一引擎，仅目录数据不同；
// 目录从 pkg/config 的 YAML 配置构建，构建后只读。
package character

import "log"

// GameState 游戏状态快照（只读）
//
// 由宿主游戏循环在每次触发评估时提供，引擎不持有也不修改。
// 数值字段如 tournamentsWon、communityTrust；布尔字段如 metMaya。
type GameState struct {
	Numbers map[string]float64
	Flags   map[string]bool
}

// Number 读取数值字段
//
// 返回：
//   - float64: 字段值
//   - bool: 字段是否存在
func (s GameState) Number(name string) (float64, bool) {
	v, ok := s.Numbers[name]
	return v, ok
}

// Flag 读取布尔字段
func (s GameState) Flag(name string) (bool, bool) {
	v, ok := s.Flags[name]
	return v, ok
}

// conditionClause 单个条件子句（数值比较或标志检查）
type conditionClause struct {
	isFlag bool

	field string
	op    string
	value float64

	flag   string
	expect bool
}

// Condition 命名触发条件：全部子句为真时条件为真
//
// 评估是封闭的、确定性的：未知字段、未知比较符都评估为假
// （fail-closed），绝不抛出错误。
type Condition struct {
	Name    string
	clauses []conditionClause
}

// Evaluate 对游戏状态快照评估条件
func (c Condition) Evaluate(state GameState) bool {
	if len(c.clauses) == 0 {
		return false
	}
	for _, clause := range c.clauses {
		if !clause.evaluate(c.Name, state) {
			return false
		}
	}
	return true
}

func (cl conditionClause) evaluate(condName string, state GameState) bool {
	if cl.isFlag {
		v, ok := state.Flag(cl.flag)
		if !ok {
			return false
		}
		return v == cl.expect
	}

	v, ok := state.Number(cl.field)
	if !ok {
		return false
	}
	switch cl.op {
	case "gte":
		return v >= cl.value
	case "gt":
		return v > cl.value
	case "lte":
		return v <= cl.value
	case "lt":
		return v < cl.value
	case "eq":
		return v == cl.value
	default:
		log.Printf("[Condition] %s: 未知比较符 %q，按假处理", condName, cl.op)
		return false
	}
}
