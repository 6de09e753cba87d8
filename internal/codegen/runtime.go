package codegen

// runtimeHelpers are the hand-written assembly blocks every program
// links against regardless of what it calls: integer-to-decimal
// printing (with and without a trailing newline) and single-character
// output, each built on raw write(2) syscalls rather than libc so a
// program that never calls puts still links cleanly.
//
// Carried over near-verbatim from original_source/src/compiler/
// x86_64_linux.py's embedded display_number/display_number_nonl/
// print_char blocks -- these are the one piece of the generator that
// is genuinely fixed text, not a template driven by the AST.
const runtimeHelpers = `display_number:
        mov rax, rdi
        mov rsi, numbuf+23
        mov byte [rsi], 10
        mov rcx, 10
        test rax, rax
        jns .dn_convert
        neg rax
.dn_convert:
        dec rsi
        xor rdx, rdx
        div rcx
        add rdx, '0'
        mov [rsi], dl
        test rax, rax
        jnz .dn_convert
        cmp rdi, 0
        jns .dn_print
        dec rsi
        mov byte [rsi], '-'
.dn_print:
        mov rdx, numbuf+24
        sub rdx, rsi
        mov rax, 1
        mov rdi, 1
        syscall
        ret

display_number_nonl:
        mov rax, rdi
        mov rsi, numbuf+23
        mov rcx, 10
        test rax, rax
        jns .dnn_convert
        neg rax
.dnn_convert:
        dec rsi
        xor rdx, rdx
        div rcx
        add rdx, '0'
        mov [rsi], dl
        test rax, rax
        jnz .dnn_convert
        cmp rdi, 0
        jns .dnn_print
        dec rsi
        mov byte [rsi], '-'
.dnn_print:
        mov rdx, numbuf+23
        sub rdx, rsi
        mov rax, 1
        mov rdi, 1
        syscall
        ret

print_char:
        mov [numbuf], dil
        mov rax, 1
        mov rdi, 1
        lea rsi, [numbuf]
        mov rdx, 1
        syscall
        ret

`
