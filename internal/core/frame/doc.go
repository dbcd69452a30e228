// Package frame 实现 broker 线上帧编解码
//
// # 帧格式
//
// 每帧由 16 字节大端帧头和可选负载组成：
//
//	 0       2       4               8               12              16
//	+-------+-------+---------------+---------------+---------------+
//	| crc16 | size  |  event_type   |   source_id   |destination_id |
//	+-------+-------+---------------+---------------+---------------+
//	| payload (size 字节) ...
//
// crc16 覆盖帧头中除校验和以外的 14 字节（header[2:16]），不覆盖负载。
//
// size == 0xFFFF 表示续帧标记：该帧不携带负载，
// 紧随其后的帧继续同一条记录，负载追加到同一个累加器。
//
// # 重同步
//
// 解码器从游标开始逐字节尝试 16 字节窗口，直到找到校验通过的帧头，
// 跳过的字节计入 Result.Skipped。找不到帧头时返回 ErrFrameSync。
//
// # 资源上限
//
// 续帧链长度、单条记录累计字节数和重同步扫描范围均有上限，
// 见 Config。解码器从不修改输入缓冲区。
//
// # 使用示例
//
//	dec := frame.NewDecoder(frame.DefaultConfig())
//	res, err := dec.Decode(buf)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Header.EventType, res.Payload)
package frame
