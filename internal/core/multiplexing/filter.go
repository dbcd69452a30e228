package multiplexing

import (
	"slices"

	"github.com/centreon/go-broker/pkg/interfaces"
	"github.com/centreon/go-broker/pkg/types"
)

// Filter Muxer 写入过滤器
//
// Types 和 Categories 都为空时接受所有类型，否则事件类型命中其一即可。
// Match 非 nil 时还必须返回 true。
type Filter struct {
	Types      []uint32
	Categories []uint16
	Match      func(interfaces.Event) bool
}

// AllowAll 接受所有事件
func AllowAll() Filter {
	return Filter{}
}

// AllowTypes 只接受指定类型
func AllowTypes(ts ...uint32) Filter {
	return Filter{Types: ts}
}

// AllowCategories 只接受指定分类
func AllowCategories(cs ...uint16) Filter {
	return Filter{Categories: cs}
}

// Allow 判断事件是否通过过滤器
func (f Filter) Allow(ev interfaces.Event) bool {
	if len(f.Types) > 0 || len(f.Categories) > 0 {
		typ := ev.Type()
		if !slices.Contains(f.Types, typ) && !slices.Contains(f.Categories, types.CategoryOf(typ)) {
			return false
		}
	}
	return f.Match == nil || f.Match(ev)
}
