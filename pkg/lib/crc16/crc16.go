// Package crc16 提供帧头校验使用的 CRC16 计算
//
// 算法为 CRC-16/X-25（CCITT 反射多项式 0x8408），
// 使用 16 项半字节查找表，每个字节先处理低 4 位再处理高 4 位。
// 寄存器初值 0xFFFF，结果取反。
//
// 校验值：Checksum([]byte("123456789")) == 0x906E
package crc16

// Init 寄存器初值
const Init uint16 = 0xffff

// table 半字节查找表
var table = [16]uint16{
	0x0000, 0x1081, 0x2102, 0x3183,
	0x4204, 0x5285, 0x6306, 0x7387,
	0x8408, 0x9489, 0xa50a, 0xb58b,
	0xc60c, 0xd68d, 0xe70e, 0xf78f,
}

// Checksum 计算 b 的 CRC16
//
// 纯函数，空输入返回 0x0000。
func Checksum(b []byte) uint16 {
	return ^Update(Init, b)
}

// Update 以未取反的寄存器值 crc 继续累加 b
//
// 用于分段计算：
//
//	crc := crc16.Update(crc16.Init, part1)
//	crc = crc16.Update(crc, part2)
//	sum := ^crc
func Update(crc uint16, b []byte) uint16 {
	for _, c := range b {
		crc = (crc >> 4) ^ table[(crc^uint16(c))&0x0f]
		crc = (crc >> 4) ^ table[(crc^uint16(c>>4))&0x0f]
	}
	return crc
}
