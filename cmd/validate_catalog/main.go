// validate_catalog 校验角色目录和特效预设配置
//
// 用法：go run ./cmd/validate_catalog [配置目录]
// 默认读取 data/characters 与 data/effects/presets.yaml。
// 解析每个角色文件、构建类型化目录（跨引用校验），并检查动画
// 引用的特效预设是否存在。
package main

import (
	"fmt"
	"os"

	"github.com/decker502/datableed/pkg/character"
	"github.com/decker502/datableed/pkg/config"
)

func main() {
	charDir := "data/characters"
	if len(os.Args) > 1 {
		charDir = os.Args[1]
	}

	manager, err := config.NewCharacterConfigManager(charDir)
	if err != nil {
		fmt.Printf("❌ 角色配置加载失败: %v\n", err)
		os.Exit(1)
	}

	presetNames := map[string]bool{}
	presets, err := config.LoadEffectPresets("data/effects/presets.yaml")
	if err != nil {
		fmt.Printf("⚠️  特效预设加载失败: %v（跳过特效引用检查）\n", err)
	} else {
		for name := range presets.Presets {
			presetNames[name] = true
		}
		fmt.Printf("✅ 特效预设: %d 个\n", len(presetNames))
	}

	failed := 0
	missingEffects := 0
	for _, id := range manager.ListCharacters() {
		cfg, err := manager.GetCharacter(id)
		if err != nil {
			fmt.Printf("❌ %s: %v\n", id, err)
			failed++
			continue
		}

		catalog, err := character.BuildCatalog(cfg)
		if err != nil {
			fmt.Printf("❌ %s: 目录构建失败: %v\n", id, err)
			failed++
			continue
		}

		fmt.Printf("✅ %s: %d 动作, %d 动画, %d 条件, %d 电影时刻\n",
			id, len(catalog.Tracks), len(catalog.Animations), len(catalog.Conditions), len(catalog.Moments))

		// 特效名是不透明标识，目录构建不校验；这里做工具级检查
		if len(presetNames) > 0 {
			for name, def := range catalog.Animations {
				for _, effect := range def.EffectNames {
					if !presetNames[effect] {
						fmt.Printf("⚠️  %s: 动画 %s 引用未定义的特效预设 %s\n", id, name, effect)
						missingEffects++
					}
				}
			}
			for _, moment := range catalog.Moments {
				for _, effect := range moment.EffectNames {
					if !presetNames[effect] {
						fmt.Printf("⚠️  %s: 时刻 %s 引用未定义的特效预设 %s\n", id, moment.Name, effect)
						missingEffects++
					}
				}
			}
		}
	}

	if failed > 0 {
		fmt.Printf("❌ %d 个角色目录校验失败\n", failed)
		os.Exit(1)
	}
	if missingEffects > 0 {
		fmt.Printf("⚠️  %d 处特效预设引用缺失（不阻断）\n", missingEffects)
	}
	fmt.Println("✅ 全部角色目录校验通过")
}
