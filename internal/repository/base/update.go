package base

import (
	"fmt"
	"strings"
)

// UpdateBuilder собирает UPDATE ... SET только из заданных полей
type UpdateBuilder struct {
	table string
	sets  []string
	args  []interface{}
}

// NewUpdate начинает построение UPDATE для таблицы
func NewUpdate(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

// Set добавляет присваивание column = $n
func (b *UpdateBuilder) Set(column string, value interface{}) *UpdateBuilder {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
	return b
}

// SetRaw добавляет присваивание без аргумента, например updated_at = NOW()
func (b *UpdateBuilder) SetRaw(column, expr string) *UpdateBuilder {
	b.sets = append(b.sets, column+" = "+expr)
	return b
}

// Empty нет ни одного присваивания
func (b *UpdateBuilder) Empty() bool {
	return len(b.sets) == 0
}

// Build возвращает запрос с условием по ключу и RETURNING
func (b *UpdateBuilder) Build(keyColumn string, key interface{}, returning string) (string, []interface{}) {
	args := append(append([]interface{}{}, b.args...), key)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		b.table, strings.Join(b.sets, ", "), keyColumn, len(args))
	if returning != "" {
		query += " RETURNING " + returning
	}
	return query, args
}
